package schedule

// rotationQueue is a one-shot FIFO of launch tags. It is filled once in launch
// order and never replenished; once drained, rotation falls back to modular
// advancement over the table.
type rotationQueue struct {
	tags []string
}

func (q *rotationQueue) Enqueue(tag string) {
	q.tags = append(q.tags, tag)
}

func (q *rotationQueue) Dequeue() (string, bool) {
	if len(q.tags) == 0 {
		return "", false
	}
	tag := q.tags[0]
	q.tags[0] = ""
	q.tags = q.tags[1:]
	return tag, true
}
