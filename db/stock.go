package db

import (
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	m "github.com/lucianomirandaGherzoni/api-crud-berlini/models"
)

func tableFor(kind m.StockKind) (string, error) {
	switch kind {
	case m.KindProduct:
		return productsTable, nil
	case m.KindSauce:
		return saucesTable, nil
	}
	return "", fmt.Errorf("unknown stock kind %q", kind)
}

type stagedWrite struct {
	table    string
	id       int
	newStock int
	quantity int
}

// ApplyStockDecrement subtracts each line's quantity from its target row
// across both collections. Every line is validated against a snapshot read
// before any write is dispatched: a missing row or an insufficient stock
// aborts the batch while the backend is still untouched. The staged writes
// then go out concurrently and are awaited jointly. If any of them fails, the
// lines that did apply are compensated with a replayed increment so the batch
// stays all-or-nothing, and the first write error is returned.
//
// Concurrent batches hitting the same row between a check and its write are
// not serialized; the backend offers no row lock over its REST surface.
func (s *DBService) ApplyStockDecrement(lines []m.StockLine) error {
	staged := make([]stagedWrite, 0, len(lines))
	for _, line := range lines {
		table, err := tableFor(line.Kind)
		if err != nil {
			return err
		}
		current, found, err := s.readStock(table, line.ID)
		if err != nil {
			return err
		}
		if !found {
			return &m.LineNotFoundError{Kind: line.Kind, ID: line.ID}
		}
		newStock := current - line.Quantity
		if newStock < 0 {
			return &m.InsufficientStockError{
				Kind:      line.Kind,
				ID:        line.ID,
				Current:   current,
				Requested: line.Quantity,
			}
		}
		staged = append(staged, stagedWrite{
			table:    table,
			id:       line.ID,
			newStock: newStock,
			quantity: line.Quantity,
		})
	}

	applied := make([]bool, len(staged))
	var g errgroup.Group
	for i, w := range staged {
		i, w := i, w
		g.Go(func() error {
			if err := s.writeStock(w.table, w.id, w.newStock); err != nil {
				return err
			}
			applied[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.compensate(staged, applied)
		return fmt.Errorf("stock decrement: %w", err)
	}
	return nil
}

// compensate replays an increment for every staged write that made it to the
// backend. Failures here leave rows decremented and can only be logged.
func (s *DBService) compensate(staged []stagedWrite, applied []bool) {
	for i, w := range staged {
		if !applied[i] {
			continue
		}
		if err := s.writeStock(w.table, w.id, w.newStock+w.quantity); err != nil {
			log.Printf("Compensating increment failed for %s ID %d: %v", w.table, w.id, err)
		}
	}
}
