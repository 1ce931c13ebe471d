package gcode

// registerCount covers the letters A through Z
const registerCount = 26

// Motion modes held in the G register
const (
	ModeRapid  = 0
	ModeLinear = 1
	ModeCW     = 2
	ModeCCW    = 3
)

// Registers holds the last value written to every letter-addressed word.
// All words are modal: values persist from one command line to the next.
type Registers struct {
	values [registerCount]float64
}

// NewRegisters returns a bank with every register zero except the feed rate
func NewRegisters(feedRate float64) *Registers {
	r := &Registers{}
	r.Set('F', feedRate)
	return r
}

// Get returns the last value set for letter, or 0
func (r *Registers) Get(letter byte) float64 {
	if !isUpper(letter) {
		return 0
	}
	return r.values[letter-'A']
}

// Set stores value for letter. Letters outside A-Z are ignored.
func (r *Registers) Set(letter byte, value float64) {
	if !isUpper(letter) {
		return
	}
	r.values[letter-'A'] = value
}

// Mode returns the active motion mode
func (r *Registers) Mode() int {
	return int(r.Get('G'))
}

// isUpper checks if a byte is an uppercase ASCII letter
func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}
