package stacktrace_test

import (
	"testing"

	"github.com/shandysiswandi/dragonfruit/internal/pkg/stacktrace"
	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	t.Parallel()

	dump := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/dragonfruit/internal/pkg/router.Recoverer.func1.1()
	/src/internal/pkg/router/middleware_recover.go:21 +0x45
panic({0x1, 0x2})
	/usr/local/go/src/runtime/panic.go:791 +0x132
github.com/shandysiswandi/dragonfruit/internal/vault/usecase.(*Usecase).Reveal(...)
	/src/internal/vault/usecase/credential_reveal.go:40
`)

	assert.Equal(t, []string{
		"internal/pkg/router/middleware_recover.go:21",
		"internal/vault/usecase/credential_reveal.go:40",
	}, stacktrace.InternalPaths(dump))
}

func TestInternalPaths_NoInternalFrames(t *testing.T) {
	t.Parallel()

	assert.Empty(t, stacktrace.InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:10 +0x1\n")))
}
