package standards

import (
	"os"
	"testing"

	"github.com/strivekit/strivekit-backend/internal/plangen/prompts"
)

func TestMain(m *testing.M) {
	prompts.RegisterAll()
	os.Exit(m.Run())
}
