package quantum

import (
	"math"
	"math/cmplx"
)

// Gate kernels operate on amplitude pairs selected by bitmask. Single-qubit
// kernels pair index i (target bit clear) with i|bit (target bit set);
// controlled kernels additionally require the control bit set. All kernels
// mutate the state in place.

func (s *StateVector) applyHadamard(wire int) {
	inv := complex(1/math.Sqrt2, 0)
	bit := 1 << wire
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = inv * (a0 + a1)
			s.Amplitudes[j] = inv * (a0 - a1)
		}
	}
}

func (s *StateVector) applyPauliX(wire int) {
	bit := 1 << wire
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyPauliY(wire int) {
	bit := 1 << wire
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = -1i*s.Amplitudes[j], 1i*s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyPauliZ(wire int) {
	bit := 1 << wire
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] = -s.Amplitudes[i]
		}
	}
}

// applyPhase multiplies the |1> component of the wire by the given factor.
// S, T, their adjoints, and PhaseShift all reduce to this.
func (s *StateVector) applyPhase(wire int, factor complex128) {
	bit := 1 << wire
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] *= factor
		}
	}
}

func (s *StateVector) applyRX(wire int, theta float64) {
	bit := 1 << wire
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a0 + js*a1
			s.Amplitudes[j] = js*a0 + c*a1
		}
	}
}

func (s *StateVector) applyRY(wire int, theta float64) {
	bit := 1 << wire
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a0 - sn*a1
			s.Amplitudes[j] = sn*a0 + c*a1
		}
	}
}

func (s *StateVector) applyRZ(wire int, theta float64) {
	bit := 1 << wire
	phase := cmplx.Exp(complex(0, theta/2))
	conj := cmplx.Conj(phase)
	for i := range s.Amplitudes {
		if i&bit != 0 {
			s.Amplitudes[i] *= phase
		} else {
			s.Amplitudes[i] *= conj
		}
	}
}

// applyRot applies the general single-qubit rotation
// Rot(phi, theta, omega) = RZ(omega) RY(theta) RZ(phi).
func (s *StateVector) applyRot(wire int, phi, theta, omega float64) {
	s.applyRZ(wire, phi)
	s.applyRY(wire, theta)
	s.applyRZ(wire, omega)
}

func (s *StateVector) applyCNOT(control, target int) {
	cBit := 1 << control
	tBit := 1 << target
	for i := range s.Amplitudes {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyCZ(control, target int) {
	cBit := 1 << control
	tBit := 1 << target
	for i := range s.Amplitudes {
		if i&cBit != 0 && i&tBit != 0 {
			s.Amplitudes[i] = -s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applySWAP(a, b int) {
	aBit := 1 << a
	bBit := 1 << b
	for i := range s.Amplitudes {
		if i&aBit != 0 && i&bBit == 0 {
			j := (i &^ aBit) | bBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyCRX(control, target int, theta float64) {
	cBit := 1 << control
	tBit := 1 << target
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	for i := range s.Amplitudes {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a0 + js*a1
			s.Amplitudes[j] = js*a0 + c*a1
		}
	}
}

func (s *StateVector) applyCRY(control, target int, theta float64) {
	cBit := 1 << control
	tBit := 1 << target
	c := complex(math.Cos(theta/2), 0)
	sn := complex(math.Sin(theta/2), 0)
	for i := range s.Amplitudes {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = c*a0 - sn*a1
			s.Amplitudes[j] = sn*a0 + c*a1
		}
	}
}

func (s *StateVector) applyCRZ(control, target int, theta float64) {
	cBit := 1 << control
	tBit := 1 << target
	phase := cmplx.Exp(complex(0, theta/2))
	conj := cmplx.Conj(phase)
	for i := range s.Amplitudes {
		if i&cBit == 0 {
			continue
		}
		if i&tBit != 0 {
			s.Amplitudes[i] *= phase
		} else {
			s.Amplitudes[i] *= conj
		}
	}
}
