// Package utils holds the configuration loader and logger factory shared by
// every revcycle command.
package utils
