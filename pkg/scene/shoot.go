package scene

import (
	"context"
	"slices"
	"sync"

	"github.com/chazu/toroid/pkg/kernel"
)

// DefaultWorkers is the ShootAll fan-out used when workers <= 0.
const DefaultWorkers = 4

// Hit is one segment reported by a named primitive.
type Hit struct {
	Name    string
	Segment kernel.Segment
}

// Result collects every primitive's segments for one ray, ordered by entry
// distance.
type Result struct {
	Ray   kernel.Ray
	Hits  []Hit
	Roots int // real roots summed over all primitives
}

// Shoot fires r at every primitive whose bounding box the ray's line
// crosses.
func (s *Scene) Shoot(r kernel.Ray) Result {
	res := Result{Ray: r}
	for _, name := range s.order {
		e := s.entries[name]
		if !r.HitsBox(e.Prim.BoundingBox()) {
			continue
		}
		segs, n := e.Prim.Shot(r)
		res.Roots += n
		for _, seg := range segs {
			res.Hits = append(res.Hits, Hit{Name: name, Segment: seg})
		}
	}
	slices.SortStableFunc(res.Hits, func(a, b Hit) int {
		switch {
		case a.Segment.In.Dist < b.Segment.In.Dist:
			return -1
		case a.Segment.In.Dist > b.Segment.In.Dist:
			return 1
		}
		return 0
	})
	return res
}

// ShootAll shoots every ray using up to workers goroutines and returns the
// results in ray order. It stops early with ctx.Err() if ctx is cancelled.
func (s *Scene) ShootAll(ctx context.Context, rays []kernel.Ray, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(rays) {
		workers = len(rays)
	}
	results := make([]Result, len(rays))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.Shoot(rays[i])
			}
		}()
	}

	var err error
feed:
	for i := range rays {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return results, nil
}
