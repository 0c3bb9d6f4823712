package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := NewKeyedMutex()

	var a, b int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				km.Lock("a")
				a++
				km.Unlock("a")
			} else {
				km.Lock("b")
				b++
				km.Unlock("b")
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, a)
	assert.Equal(t, 50, b)
}

// 最后一个持有者释放后不留残余条目。
func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := NewKeyedMutex()

	km.Lock("x")
	km.Unlock("x")
	km.Lock("y")
	km.Unlock("y")

	assert.Equal(t, 0, km.Len())
}
