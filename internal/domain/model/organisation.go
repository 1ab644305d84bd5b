package model

// Organisation is a tenant known to the katalogus. Every organisation gets
// its own scheduler pair and queues.
type Organisation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
