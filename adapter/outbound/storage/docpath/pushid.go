package docpath

import (
	"crypto/rand"
	"sync"
	"time"
)

// characters ordered by ASCII value so ids sort lexicographically by time
const pushChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

// PushIDGenerator produces 20 character keys in the realtime database
// push format: 8 chars of millisecond time then 12 random chars. Ids made
// within the same millisecond increment the random part so they stay ordered.
type PushIDGenerator struct {
	mu       sync.Mutex
	lastTime int64
	lastRand [12]int
	now      func() time.Time
}

func NewPushIDGenerator() *PushIDGenerator {
	return &PushIDGenerator{now: time.Now}
}

func (g *PushIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now().UnixMilli()
	duplicate := ts == g.lastTime
	g.lastTime = ts

	var id [20]byte
	for i := 7; i >= 0; i-- {
		id[i] = pushChars[ts%64]
		ts /= 64
	}

	if !duplicate {
		var buf [12]byte
		_, _ = rand.Read(buf[:])
		for i, b := range buf {
			g.lastRand[i] = int(b) % 64
		}
	} else {
		i := 11
		for ; i >= 0 && g.lastRand[i] == 63; i-- {
			g.lastRand[i] = 0
		}
		if i >= 0 {
			g.lastRand[i]++
		}
	}

	for i, r := range g.lastRand {
		id[8+i] = pushChars[r]
	}
	return string(id[:])
}
