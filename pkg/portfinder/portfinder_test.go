package portfinder

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProber records probes and reports the ports in free as available.
type fakeProber struct {
	free   map[int]bool
	probed []int
}

func (f *fakeProber) Probe(_ context.Context, _ string, port int) bool {
	f.probed = append(f.probed, port)
	return f.free[port]
}

func TestAllocate_FallsBackToCandidates_When_PreferredTaken(t *testing.T) {
	t.Parallel()

	p := &fakeProber{free: map[int]bool{4001: true, 4002: true}}
	port, err := Allocate(context.Background(), Request{Port: 3000, Ports: []int{4000, 4001}}, WithProber(p))

	require.NoError(t, err)
	assert.Equal(t, 4001, port)
	assert.Equal(t, []int{3000, 4000, 4001}, p.probed)
}

func TestAllocate_ReturnsPreferred_When_Free(t *testing.T) {
	t.Parallel()

	p := &fakeProber{free: map[int]bool{5173: true}}
	port, err := Allocate(context.Background(), Request{Port: 5173, Ports: []int{4000}}, WithProber(p))

	require.NoError(t, err)
	assert.Equal(t, 5173, port)
	assert.Equal(t, []int{5173}, p.probed)
}

func TestAllocate_DefaultsPreferredPort(t *testing.T) {
	t.Parallel()

	p := &fakeProber{free: map[int]bool{DefaultPort: true}}
	port, err := Allocate(context.Background(), Request{}, WithProber(p))

	require.NoError(t, err)
	assert.Equal(t, DefaultPort, port)
}

func TestAllocate_ScansRangeInclusive(t *testing.T) {
	t.Parallel()

	p := &fakeProber{free: map[int]bool{8003: true}}
	port, err := Allocate(context.Background(), Request{Port: 3000, Range: &Range{From: 8000, To: 8003}}, WithProber(p))

	require.NoError(t, err)
	assert.Equal(t, 8003, port)
	assert.Equal(t, []int{3000, 8000, 8001, 8002, 8003}, p.probed)
}

func TestAllocate_NeverProbesTwice(t *testing.T) {
	t.Parallel()

	p := &fakeProber{}
	_, err := Allocate(context.Background(), Request{
		Port:  3000,
		Ports: []int{3000, 3001, 3001},
		Range: &Range{From: 3000, To: 3002},
	}, WithProber(p))

	require.Error(t, err)
	assert.Equal(t, []int{3000, 3001, 3002}, p.probed)
}

func TestAllocate_SkipsOutOfRangePorts(t *testing.T) {
	t.Parallel()

	p := &fakeProber{free: map[int]bool{4000: true}}
	port, err := Allocate(context.Background(), Request{Port: 3000, Ports: []int{-1, 70000, 4000}}, WithProber(p))

	require.NoError(t, err)
	assert.Equal(t, 4000, port)
	assert.Equal(t, []int{3000, 4000}, p.probed)
}

func TestAllocate_Errors_When_Exhausted(t *testing.T) {
	t.Parallel()

	p := &fakeProber{}
	_, err := Allocate(context.Background(), Request{Port: 3000, Ports: []int{4000}, Range: &Range{From: 5000, To: 5001}}, WithProber(p))

	require.ErrorIs(t, err, ErrExhausted)
	var ee *ExhaustedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "no free port found (tried 3000, ports 4000, range 5000-5001)", err.Error())
}

func TestAllocate_Errors_When_RangeInverted(t *testing.T) {
	t.Parallel()

	_, err := Allocate(context.Background(), Request{Range: &Range{From: 10, To: 5}}, WithProber(&fakeProber{}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExhausted)
}

func TestAllocate_Errors_When_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Allocate(ctx, Request{}, WithProber(&fakeProber{}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListenProber_DetectsOccupiedPort(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	assert.False(t, ListenProber{}.Probe(context.Background(), "127.0.0.1", port))
}
