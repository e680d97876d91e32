// Package harness runs named conformance tests against simulated devices.
//
// Tests are registered explicitly on a *Harness, which is passed by reference
// to whoever contributes tests; there is no global registry. Each test body
// runs on its own named goroutine under a per-test timeout and its outcome is
// classified into a Status:
//
//	PASS     body returned nil
//	FAIL     body returned an *AssertionError
//	TIMEOUT  body did not finish before the per-test timeout
//	ERROR    any other error, including panics and rejected device operations
//	NOTRUN   test excluded by a filter or the run was canceled
package harness
