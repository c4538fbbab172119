// Package logs reads the animatch log file for the "animatch logs" command.
//
// Tail returns the last N matching lines or everything appended after a byte
// offset, optionally polling until new lines arrive. Filter restricts output
// to the records of one import run.
package logs
