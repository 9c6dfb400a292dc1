package control

import "errors"

// scriptSensor returns scripted register contents, one pair per Tx.
type scriptSensor struct {
	reads [][2]byte
	errs  []error
	calls int
	lastW []byte
}

func (s *scriptSensor) Tx(w, r []byte) error {
	i := s.calls
	s.calls++
	s.lastW = append([]byte(nil), w...)
	if i < len(s.errs) && s.errs[i] != nil {
		return s.errs[i]
	}
	if len(s.reads) == 0 {
		return errors.New("no reads scripted")
	}
	if i >= len(s.reads) {
		i = len(s.reads) - 1
	}
	copy(r, s.reads[i][:])
	return nil
}

type recordActuator struct {
	values []bool
	err    error
}

func (a *recordActuator) Set(on bool) error {
	a.values = append(a.values, on)
	return a.err
}

type lineSink struct {
	lines []string
}

func (s *lineSink) Emit(line string) {
	s.lines = append(s.lines, line)
}

func newTestController(setPoint int16) (*Controller, *scriptSensor, *recordActuator, *lineSink) {
	sensor := &scriptSensor{}
	act := &recordActuator{}
	sink := &lineSink{}
	c := New(Config{SetPoint: setPoint, Register: 0x00}, sensor, act, sink)
	return c, sensor, act, sink
}
