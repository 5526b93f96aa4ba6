package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/cosmosim/internal/cosmology"
	"github.com/san-kum/cosmosim/internal/result"
	"github.com/san-kum/cosmosim/internal/sim"
)

const historyCapacity = 120

type TickMsg time.Time

// LiveModel steps a cosmology model on every tick and shows the five
// quantities as they evolve.
type LiveModel struct {
	model        cosmology.Model
	integrator   sim.Integrator
	initial      result.SimulationResult
	state        sim.State
	t, dt        float64
	stepsPerTick int
	fps          int
	running      bool
	err          error
	history      []float64
}

func NewLiveModel(model cosmology.Model, integ sim.Integrator, initial result.SimulationResult, dt float64, fps int) LiveModel {
	if fps <= 0 {
		fps = 30
	}
	m := LiveModel{
		model:        model,
		integrator:   integ,
		initial:      initial,
		dt:           dt,
		stepsPerTick: 1,
		fps:          fps,
	}
	m.reset()
	return m
}

func (m *LiveModel) reset() {
	m.state = cosmology.ToState(m.initial)
	m.t = m.initial.Time
	m.running = true
	m.err = nil
	m.history = make([]float64, 0, historyCapacity)
	m.history = append(m.history, m.initial.Density)
}

// Current returns the state shown on screen.
func (m LiveModel) Current() result.SimulationResult {
	return cosmology.FromState(m.t, m.state)
}

func (m LiveModel) Err() error { return m.err }

func (m LiveModel) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd {
	return m.tick()
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			m.stepsPerTick *= 2
		case "-":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		}
		return m, nil

	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *LiveModel) step() {
	for i := 0; i < m.stepsPerTick; i++ {
		next := m.integrator.Step(m.model, m.state, m.t, m.dt)
		if !next.IsValid() {
			m.err = fmt.Errorf("%w at t=%.4f", cosmology.ErrDiverged, m.t)
			m.running = false
			return
		}
		m.state = next
		m.t += m.dt
	}

	if len(m.history) == historyCapacity {
		copy(m.history, m.history[1:])
		m.history = m.history[:historyCapacity-1]
	}
	m.history = append(m.history, m.state[0])
}

func (m LiveModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("cosmosim live: %s", m.model.Name())))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(ErrorStyle.Render(m.err.Error()))
	case m.running:
		b.WriteString(StatusRunning.Render("running"))
	default:
		b.WriteString(StatusPaused.Render("paused"))
	}
	b.WriteString(Subtle.Render(fmt.Sprintf("  dt=%g  steps/frame=%d", m.dt, m.stepsPerTick)))
	b.WriteString("\n\n")

	for i, v := range m.Current().Fields() {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-12s", result.FieldNames[i])))
		b.WriteString(MetricValue.Render(fmt.Sprintf("%14.6f", v)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(MetricLabel.Render("density "))
	b.WriteString(SparklineChart(m.history, 60))
	b.WriteString("\n\n")
	b.WriteString(KeyHint.Render("space pause  r reset  +/- speed  q quit"))
	b.WriteString("\n")
	return b.String()
}
