package verbose

import (
	"strings"

	"github.com/sarchlab/steptrace/stepping"
	"github.com/sarchlab/steptrace/units"
)

// reportSecondaries prints how many secondaries the step produced and one
// row for each of them at or above the threshold. The count includes the
// secondaries that are filtered out.
func (t *SteppingVerbose) reportSecondaries(
	secondaries []*stepping.Track,
	threshold float64,
) {
	b := new(strings.Builder)

	b.WriteString("    ++List of ")
	b.WriteString(integer(len(secondaries), 0))
	b.WriteString(" secondaries generated \n")

	for _, sec := range secondaries {
		if sec == nil || sec.KineticEnergy < threshold {
			continue
		}

		b.WriteString("      (")
		b.WriteString(num(sec.Position.X/units.Cm, 9, tablePrecision) + " ")
		b.WriteString(num(sec.Position.Y/units.Cm, 9, tablePrecision) + " ")
		b.WriteString(num(sec.Position.Z/units.Cm, 9, tablePrecision) + ") cm, ")
		b.WriteString(num(sec.KineticEnergy/units.GeV, 9, tablePrecision))
		b.WriteString(" GeV, ")
		b.WriteString(num(sec.GlobalTime/units.Ns, 9, tablePrecision))
		b.WriteString(" ns, ")
		b.WriteString(t.field(18, func() string {
			return pad(sec.ParticleName(), 18)
		}))
		b.WriteString("\n")
	}

	t.emit(b)
}
