package ingress

// ValidationMessage is the reason returned to producers submitting blank text.
const ValidationMessage = "Text must not be empty."

// IdempotencyKeyHeader carries the producer's key for a logical submission.
const IdempotencyKeyHeader = "Idempotency-Key"
