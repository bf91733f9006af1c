// Package sidekick is the conversational agent driven by the terminal
// session: a worker model answers, an evaluator model judges the answer
// against the user's success criterion, and the worker retries with the
// evaluator's feedback until the criterion is met, the evaluator asks for
// user input, or the iteration limit is hit.
//
// Flow (one Submit):
//
//	history window + user(message) -> worker -> evaluator -> [retry worker with feedback]
//
// The result is the new exchange plus the final evaluator feedback:
//
//	user(message), assistant(answer), assistant("Evaluator Feedback on this answer: ...")
package sidekick
