// internal/service/offer/infrastructure/adapter/clock.go
package adapter

import "time"

// SystemClock 是 port.Clock 的真实实现。
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
