package services

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/logger"

	"sorteo/internal/models"
)

// Premios is the prize table, in draw order: 4th place first, the
// motorcycle last.
var Premios = []models.Prize{
	{
		Lugar:  "4to Lugar",
		Nombre: "Set de velas con color y aroma a elección",
		Icon:   "star",
		Color:  "from-gray-400 to-gray-600",
	},
	{
		Lugar:  "3er Lugar",
		Nombre: "3 sesiones de drenaje linfático + 1 limpieza facial",
		Icon:   "medal",
		Color:  "from-orange-400 to-orange-600",
	},
	{
		Lugar:  "2do Lugar",
		Nombre: "Dos noches para dos personas en cabañas Araucanía Pura",
		Icon:   "crown",
		Color:  "from-purple-400 to-purple-600",
	},
	{
		Lugar:  "1er Lugar",
		Nombre: "Motocicleta Marca BERA MOTORCYCLES, MODELO SBR, MOTOR 150CC",
		Icon:   "trophy",
		Color:  "from-yellow-400 to-orange-500",
	},
}

// minPaidForDraw is the minimum number of paid slots before any prize
// may be drawn.
const minPaidForDraw = 4

var (
	ErrNotEnoughPaid = errors.New("Debes tener al menos 4 números pagados para sortear los premios.")
	ErrOutOfOrder    = errors.New("el sorteo debe seguir el orden de los premios")
	ErrEmptyPool     = errors.New("No hay suficientes participantes para este premio.")
)

// DrawEngine picks random winners from the paid slots. All state is
// held in memory only: restarting the process discards every result.
type DrawEngine struct {
	mu      sync.Mutex
	winners []models.DrawWinner
	history []models.DrawResult
	delay   time.Duration
	rand    *rand.Rand
	now     func() time.Time
}

// NewDrawEngine creates an engine. delay is the presentational pause
// before each result is revealed; pass zero to draw immediately.
func NewDrawEngine(delay time.Duration) *DrawEngine {
	return &DrawEngine{
		delay: delay,
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
	}
}

// Draw picks the winner for the prize at prizeIndex from the paid
// slots that have not already won this session. Prizes must be drawn
// strictly in table order: the prize at index i is drawable only when
// exactly i prizes have been drawn.
func (e *DrawEngine) Draw(prizeIndex int, slots []models.Slot) (*models.DrawWinner, error) {
	if prizeIndex < 0 || prizeIndex >= len(Premios) {
		return nil, ErrOutOfOrder
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	paid := paidSlots(slots)
	if len(paid) < minPaidForDraw {
		return nil, ErrNotEnoughPaid
	}
	if len(e.winners) != prizeIndex {
		return nil, ErrOutOfOrder
	}

	won := make(map[int]bool, len(e.winners))
	for _, w := range e.winners {
		won[w.Numero] = true
	}
	var pool []models.Slot
	for _, slot := range paid {
		if !won[slot.Number] {
			pool = append(pool, slot)
		}
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	// The pause mirrors the reveal animation. Holding the lock keeps a
	// second draw from starting mid-reveal.
	if e.delay > 0 {
		time.Sleep(e.delay)
	}

	picked := pool[e.rand.Intn(len(pool))]
	nombre := picked.CustomerName
	if nombre == "" {
		nombre = "Cliente"
	}

	prize := Premios[prizeIndex]
	winner := models.DrawWinner{
		Premio:      prize.Lugar,
		Descripcion: prize.Nombre,
		Numero:      picked.Number,
		Nombre:      nombre,
		Icon:        prize.Icon,
		Color:       prize.Color,
	}
	e.winners = append(e.winners, winner)

	logger.Infof("Premio %q sorteado: número %03d (%s)", prize.Lugar, winner.Numero, winner.Nombre)
	return &winner, nil
}

// DrawSingle is the standalone variant: one uniform pick over all paid
// slots, recorded in a separate newest-first history. Prior winners
// stay in the pool.
func (e *DrawEngine) DrawSingle(slots []models.Slot) (*models.DrawResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	paid := paidSlots(slots)
	if len(paid) == 0 {
		return nil, ErrEmptyPool
	}

	if e.delay > 0 {
		time.Sleep(e.delay)
	}

	picked := paid[e.rand.Intn(len(paid))]
	name := picked.CustomerName
	if name == "" {
		name = "Cliente"
	}

	result := models.DrawResult{
		WinningNumber:     picked.Number,
		WinnerName:        name,
		DrawDate:          e.now().UTC().Format(time.RFC3339),
		TotalParticipants: len(paid),
	}
	e.history = append([]models.DrawResult{result}, e.history...)
	return &result, nil
}

// Winners returns the prizes drawn so far, in draw order.
func (e *DrawEngine) Winners() []models.DrawWinner {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.DrawWinner, len(e.winners))
	copy(out, e.winners)
	return out
}

// History returns the single-draw results, newest first.
func (e *DrawEngine) History() []models.DrawResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.DrawResult, len(e.history))
	copy(out, e.history)
	return out
}

// Reset discards all winners and history, as a page reload does.
func (e *DrawEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.winners = nil
	e.history = nil
}

func paidSlots(slots []models.Slot) []models.Slot {
	var paid []models.Slot
	for _, s := range slots {
		if s.PaymentStatus == models.PaymentPaid {
			paid = append(paid, s)
		}
	}
	return paid
}
