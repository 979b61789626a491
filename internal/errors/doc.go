// Package errors provides structured, coded error values for Kirei.
//
// Every error carries a stable code (e.g. "FX001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Error Categories
//
//   - reactivity: misuse of the reactive core (invalid wrap targets,
//     non-callable watchers, read-only writes, runaway effects)
//   - config: kirei.json loading and validation
//   - cli: command line failures
//
// # Usage
//
//	err := errors.New("FX001").
//	    WithDetail("got string").
//	    WithSuggestion("Wrap the value with fx.NewRef instead")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR FX001: Invalid reactive target
//	//
//	//   got string
//	//
//	//   Hint: Wrap the value with fx.NewRef instead
//	//
//	//   Learn more: https://kirei.dev/docs/errors/FX001
//
// Two errors with the same code match under errors.Is, so packages can
// export a registered error as a sentinel and decorate copies of it.
package errors
