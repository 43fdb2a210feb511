// Package repl provides interactive mode for stackkv-cli.
//
//   - repl.go: main loop, local commands and transaction depth prompt
//   - reader.go: line input (readline for terminals, plain for pipes)
//   - completer.go: tab completion of protocol verbs
//   - history.go: command history persistence
//
// Lines that are not local commands go to the server verbatim, one
// frame per line.
package repl
