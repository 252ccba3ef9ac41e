// formatação de valores numéricos em headers sem passar por fmt.

package ratelimit

import (
	"strconv"
	"time"
)

func formatInt(v int) string { return strconv.Itoa(v) }

// formatRetryAfter arredonda para cima em segundos inteiros (mínimo 1),
// já que Retry-After não aceita fração.
func formatRetryAfter(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
