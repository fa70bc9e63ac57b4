package services

import (
	"errors"
	"testing"

	"sorteo/internal/models"
)

func paidSlot(number int, name string) models.Slot {
	return models.Slot{
		Number:        number,
		IsReserved:    true,
		CustomerName:  name,
		PaymentStatus: models.PaymentPaid,
	}
}

func TestDrawEngine_Draw(t *testing.T) {
	slots := []models.Slot{
		paidSlot(5, "Ana"),
		paidSlot(10, "Luis"),
		{Number: 11, IsReserved: true, CustomerName: "Eva", PaymentStatus: models.PaymentPending},
		paidSlot(15, "Maria"),
		paidSlot(20, ""),
	}

	t.Run("Fewer than 4 paid slots blocks the draw", func(t *testing.T) {
		engine := NewDrawEngine(0)
		short := []models.Slot{paidSlot(1, "Ana"), paidSlot(2, "Luis"), paidSlot(3, "Eva")}

		_, err := engine.Draw(0, short)
		if !errors.Is(err, ErrNotEnoughPaid) {
			t.Fatalf("Expected ErrNotEnoughPaid, but got %v", err)
		}
		if len(engine.Winners()) != 0 {
			t.Errorf("Expected no winner to be appended, but got %d", len(engine.Winners()))
		}
	})

	t.Run("Drawing out of order is rejected", func(t *testing.T) {
		engine := NewDrawEngine(0)

		_, err := engine.Draw(2, slots)
		if !errors.Is(err, ErrOutOfOrder) {
			t.Fatalf("Expected ErrOutOfOrder, but got %v", err)
		}
		if len(engine.Winners()) != 0 {
			t.Errorf("Expected no winner to be appended, but got %d", len(engine.Winners()))
		}
	})

	t.Run("Four sequential draws cover the whole paid pool", func(t *testing.T) {
		engine := NewDrawEngine(0)
		seen := make(map[int]bool)

		for i := 0; i < len(Premios); i++ {
			winner, err := engine.Draw(i, slots)
			if err != nil {
				t.Fatalf("Draw %d: expected no error, but got %v", i, err)
			}
			if winner.Premio != Premios[i].Lugar {
				t.Errorf("Draw %d: expected prize %q, but got %q", i, Premios[i].Lugar, winner.Premio)
			}
			if seen[winner.Numero] {
				t.Errorf("Draw %d: number %d won twice", i, winner.Numero)
			}
			seen[winner.Numero] = true
		}

		for _, n := range []int{5, 10, 15, 20} {
			if !seen[n] {
				t.Errorf("Expected paid number %d to have won, winners: %v", n, engine.Winners())
			}
		}
		if seen[11] {
			t.Error("Expected the pending number 11 to stay out of the pool")
		}
	})

	t.Run("An unnamed winner is reported as Cliente", func(t *testing.T) {
		engine := NewDrawEngine(0)
		anonymous := []models.Slot{paidSlot(1, ""), paidSlot(2, ""), paidSlot(3, ""), paidSlot(4, "")}

		winner, err := engine.Draw(0, anonymous)
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if winner.Nombre != "Cliente" {
			t.Errorf("Expected placeholder name Cliente, but got %q", winner.Nombre)
		}
	})

	t.Run("Reset discards all winners", func(t *testing.T) {
		engine := NewDrawEngine(0)
		if _, err := engine.Draw(0, slots); err != nil {
			t.Fatal(err)
		}
		engine.Reset()
		if len(engine.Winners()) != 0 {
			t.Errorf("Expected no winners after reset, but got %d", len(engine.Winners()))
		}
	})
}

func TestDrawEngine_DrawSingle(t *testing.T) {
	slots := []models.Slot{paidSlot(5, "Ana"), paidSlot(10, "Luis")}

	t.Run("An empty pool is rejected", func(t *testing.T) {
		engine := NewDrawEngine(0)
		_, err := engine.DrawSingle(nil)
		if !errors.Is(err, ErrEmptyPool) {
			t.Fatalf("Expected ErrEmptyPool, but got %v", err)
		}
	})

	t.Run("History is kept newest first", func(t *testing.T) {
		engine := NewDrawEngine(0)

		first, err := engine.DrawSingle(slots)
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if first.TotalParticipants != 2 {
			t.Errorf("Expected 2 participants, but got %d", first.TotalParticipants)
		}

		second, err := engine.DrawSingle(slots)
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}

		history := engine.History()
		if len(history) != 2 {
			t.Fatalf("Expected 2 history entries, but got %d", len(history))
		}
		if history[0].WinningNumber != second.WinningNumber {
			t.Errorf("Expected the newest result first, history: %v", history)
		}
	})
}
