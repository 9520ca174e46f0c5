package shell

import (
	"github.com/peterh/liner"
)

// Prompter reads one edited line per call.
type Prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// LinerPrompter is a terminal Prompter. History lives only in memory; it is
// never read from or written to disk since lines can carry plaintext.
type LinerPrompter struct {
	state *liner.State
}

func NewLinerPrompter() *LinerPrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)

	return &LinerPrompter{state: state}
}

func (p *LinerPrompter) Prompt(prompt string) (string, error) {
	return p.state.Prompt(prompt)
}

func (p *LinerPrompter) AppendHistory(line string) {
	p.state.AppendHistory(line)
}

func (p *LinerPrompter) Close() error {
	return p.state.Close()
}
