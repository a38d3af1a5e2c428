package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no library, invalid retriever or template config)
	ExitDataError   = 3 // Data error (bad identifier, malformed response, validation failure)
	ExitNotFound    = 4 // Record, retriever or remote resource not found
	ExitDuplicate   = 5 // Record already in the library
)
