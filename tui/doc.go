// Package tui is the line-oriented terminal front end used by the play
// command. It prints a coloured grid and reads commands such as "r 3 4" or
// "f 0 2" until the game is won, lost or abandoned.
package tui
