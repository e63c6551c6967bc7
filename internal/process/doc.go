// Package process runs rendering engines as killable process groups.
package process
