package render

import (
	"image"
	"sync"
)

// rowScheduler hands out the rows of one scan group to workers.
type rowScheduler struct {
	rows []image.Rectangle
	m    sync.Mutex
}

func (rs *rowScheduler) popRow() (y int, found bool) {
	rs.m.Lock()
	defer rs.m.Unlock()

	if len(rs.rows) == 0 {
		return 0, false
	}
	y = rs.rows[0].Min.Y
	rs.rows = rs.rows[1:]
	return y, true
}

// renderRows calls row once for every rectangle in rows and returns when all
// of them are done. With more than one worker rows run in parallel, but no
// row is handed out twice, so every pixel has a single writer.
func (r *Renderer) renderRows(rows []image.Rectangle, row func(y int)) {
	workers := min(r.workers, len(rows))
	if workers <= 1 {
		for _, rect := range rows {
			row(rect.Min.Y)
		}
		return
	}

	rs := &rowScheduler{rows: rows}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				y, found := rs.popRow()
				if !found {
					return
				}
				row(y)
			}
		}()
	}
	wg.Wait()
}
