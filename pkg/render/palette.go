package render

import "github.com/charmbracelet/lipgloss"

const (
	paletteSize = 11
	noProject   = lipgloss.Color("244")
)

// projectColors are ANSI-256 colours that read well on light and dark
// terminals.
var projectColors = [paletteSize]lipgloss.Color{
	"33", "35", "69", "99", "105", "129", "136", "166", "172", "37", "64",
}

type projectState struct {
	slot     int
	lastUsed uint64
}

// Palette hands out a stable colour per project. When every slot is taken
// the least recently used project gives its colour up.
type Palette struct {
	projects map[string]*projectState
	clock    uint64
}

func NewPalette() *Palette {
	return &Palette{projects: make(map[string]*projectState)}
}

// Color returns the colour for project, assigning one on first use.
func (p *Palette) Color(project string) lipgloss.Color {
	if project == "" {
		return noProject
	}
	p.clock++

	if state, ok := p.projects[project]; ok {
		state.lastUsed = p.clock
		return projectColors[state.slot]
	}
	return projectColors[p.assign(project)]
}

func (p *Palette) assign(project string) int {
	used := make(map[int]bool, len(p.projects))
	for _, s := range p.projects {
		used[s.slot] = true
	}
	for i := 0; i < paletteSize; i++ {
		if !used[i] {
			p.projects[project] = &projectState{slot: i, lastUsed: p.clock}
			return i
		}
	}

	// full: evict the least recently used project
	var oldest string
	for name, s := range p.projects {
		if oldest == "" || s.lastUsed < p.projects[oldest].lastUsed {
			oldest = name
		}
	}
	slot := p.projects[oldest].slot
	delete(p.projects, oldest)
	p.projects[project] = &projectState{slot: slot, lastUsed: p.clock}
	return slot
}
