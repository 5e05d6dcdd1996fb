// Package ui renders git lifecycle events for people reading a terminal.
//
// It is used when the console log format is selected; structured output keeps
// flowing through the JSON logger.
package ui
