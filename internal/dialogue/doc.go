// Package dialogue implements the conversation orchestration engine.
//
// # Overview
//
// The dialogue package sits between the HTTP boundary and the capabilities
// it mediates: the conversation store, the phone-number detector, the model
// client, and the tool registry.
//
// # Generate
//
// One call handles one user turn:
//
//	reply, err := svc.Generate(ctx, userMessage, threadID)
//
// The flow per call:
//
//  1. Serialize on the thread and load (or seed) its history.
//  2. Run the phone detector on the user message. A hit appends a fixed
//     warning and returns without touching the model.
//  3. Otherwise loop: call the model with history plus tool schemas; append
//     its reply verbatim; if it requested tools, dispatch each one, append
//     the results, and go again. A reply without tool calls is final.
//
// The loop is bounded; exceeding the round cap fails with
// ErrToolLoopExceeded rather than burning tokens against a misbehaving
// model.
//
// # Errors
//
// The service defines no local failure kinds beyond the round cap. Unknown
// tools, malformed tool arguments, and upstream model or search failures
// propagate wrapped for the boundary to map onto status codes.
package dialogue
