package core

import (
	"fmt"
	"sort"
	"time"
)

// manualClock is a Scheduler driven by Advance instead of wall time.
type manualClock struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	at        time.Duration
	seq       int
	fn        func()
	cancelled bool
}

func (c *manualClock) Schedule(d time.Duration, fn func()) func() {
	c.seq++
	t := &manualTask{at: c.now + d, seq: c.seq, fn: fn}
	c.tasks = append(c.tasks, t)
	return func() { t.cancelled = true }
}

// Advance moves time forward and runs every task that came due, in order.
func (c *manualClock) Advance(d time.Duration) {
	c.now += d
	for {
		due := c.due()
		if due == nil {
			return
		}
		due.cancelled = true
		due.fn()
	}
}

// Pending counts scheduled tasks that have neither run nor been cancelled.
func (c *manualClock) Pending() int {
	n := 0
	for _, t := range c.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (c *manualClock) due() *manualTask {
	var ready []*manualTask
	for _, t := range c.tasks {
		if !t.cancelled && t.at <= c.now {
			ready = append(ready, t)
		}
	}
	if len(ready) == 0 {
		return nil
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].at != ready[j].at {
			return ready[i].at < ready[j].at
		}
		return ready[i].seq < ready[j].seq
	})
	return ready[0]
}

// recordingSink captures mutation intents.
type recordingSink struct {
	deleted []int
	edited  []Product
}

func (s *recordingSink) DeleteProduct(id int)  { s.deleted = append(s.deleted, id) }
func (s *recordingSink) EditProduct(p Product) { s.edited = append(s.edited, p) }

// makeProducts builds n products with ids 1..n, cycling categories.
func makeProducts(n int) []Product {
	categories := []string{"Electronics", "Grocery", "Clothing", "Accessories"}
	products := make([]Product, n)
	for i := range products {
		id := i + 1
		products[i] = Product{
			ID:       id,
			Name:     fmt.Sprintf("Product-%d", id),
			Category: categories[i%len(categories)],
			Price:    float64(10 + id),
			Stock:    id % 20,
			Status:   StatusActive,
		}
	}
	return products
}

func ids(products []Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
