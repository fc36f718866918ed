package points

import (
	"testing"

	"github.com/codeready-toolchain/tarsy-metalearn/pkg/domain"
)

func TestRecordValidationOutcome_DoesNotPanicForEitherOutcome(t *testing.T) {
	recordValidationOutcome(domain.Diagnosis, true)
	recordValidationOutcome(domain.Localization, false)
}
