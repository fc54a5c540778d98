// Package trainer keeps the run wide training state shared by the workers:
// the global token counter that drives the linear learning rate decay and
// the stopping condition, and the progress report.
package trainer
