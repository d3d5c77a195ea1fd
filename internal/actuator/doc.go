// Package actuator energises pump relays for fixed durations.
//
// Two Driver backends exist:
//
//   - GPIO shells out to the pump-control script per activation.
//     The script owns the relay: it energises, sleeps, and always
//     de-energises in a finally block. The Go side only supervises,
//     killing the subprocess if it overruns duration + grace.
//   - Simulator sleeps in-process and records a timeline, for
//     development machines without relay boards and for tests.
//
// The safety contract for both: a started activation always ends with
// the pump de-energised, and Activate does not return before that.
package actuator
