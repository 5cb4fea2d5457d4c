// Package wizard is the company evaluation workflow: pick a company, review its
// basic information, score it across the pillars, and record the result.
//
// Allowed here:
// - step gating, draft editing and validation, runway derivation
// - the new company overlay and its save/cancel semantics
//
// Not allowed here:
// - storage (see CompanyCollection and EvaluationSink), rendering
package wizard
