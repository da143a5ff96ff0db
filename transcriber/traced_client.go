package transcriber

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

// TracedClient wraps http.Client with an httptrace that times each phase
// of the request, so slow uploads can be attributed to DNS, TLS or the
// network instead of the STT service.
type TracedClient struct {
	client *http.Client
	apiURL string
}

func NewTracedClient(apiURL string) *TracedClient {
	return &TracedClient{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		apiURL: apiURL,
	}
}

type TracedResponse struct {
	Body       []byte
	StatusCode int
	Header     http.Header
	Metrics    *NetworkMetrics
}

// phaseTimes holds the raw trace timestamps. Any of them can stay zero: a
// reused connection skips DNS/TCP/TLS, and an error before the response
// means the first byte never arrives.
type phaseTimes struct {
	getConn, gotConn             time.Time
	dnsStart, tcpStart, tlsStart time.Time
	wroteHeaders, wroteRequest   time.Time
	firstByte                    time.Time
}

func (p *phaseTimes) trace(m *NetworkMetrics) *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GetConn: func(_ string) { p.getConn = time.Now() },
		GotConn: func(info httptrace.GotConnInfo) {
			p.gotConn = time.Now()
			m.ConnWait = p.gotConn.Sub(p.getConn)
			m.ConnReused = info.Reused
		},
		DNSStart:          func(_ httptrace.DNSStartInfo) { p.dnsStart = time.Now() },
		DNSDone:           func(_ httptrace.DNSDoneInfo) { m.DNS = time.Since(p.dnsStart) },
		ConnectStart:      func(_, _ string) { p.tcpStart = time.Now() },
		ConnectDone:       func(_, _ string, _ error) { m.TCP = time.Since(p.tcpStart) },
		TLSHandshakeStart: func() { p.tlsStart = time.Now() },
		TLSHandshakeDone:  func(_ tls.ConnectionState, _ error) { m.TLS = time.Since(p.tlsStart) },
		WroteHeaders: func() {
			p.wroteHeaders = time.Now()
			m.ReqHeaders = p.wroteHeaders.Sub(p.gotConn)
		},
		WroteRequest: func(_ httptrace.WroteRequestInfo) {
			p.wroteRequest = time.Now()
			m.ReqBody = p.wroteRequest.Sub(p.wroteHeaders)
		},
		GotFirstResponseByte: func() {
			p.firstByte = time.Now()
			if !p.wroteRequest.IsZero() {
				m.TTFB = p.firstByte.Sub(p.wroteRequest)
			}
		},
	}
}

// finish records the body-download and total durations. A zero firstByte
// means GotFirstResponseByte never fired; Download stays zero rather than
// being measured from the epoch.
func (m *NetworkMetrics) finish(reqStart, firstByte time.Time) {
	if !firstByte.IsZero() {
		m.Download = time.Since(firstByte)
	}
	m.Total = time.Since(reqStart)
}

func (c *TracedClient) Do(req *http.Request) (*TracedResponse, error) {
	metrics := &NetworkMetrics{}
	var phases phaseTimes

	req = req.WithContext(httptrace.WithClientTrace(req.Context(), phases.trace(metrics)))
	reqStart := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	metrics.finish(reqStart, phases.firstByte)

	return &TracedResponse{
		Body:       body,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Metrics:    metrics,
	}, nil
}

// Warm opens the TLS connection ahead of the first upload so the handshake
// doesn't count against transcription latency.
func (c *TracedClient) Warm() time.Duration {
	var tlsStart time.Time
	var tlsDuration time.Duration

	trace := &httptrace.ClientTrace{
		TLSHandshakeStart: func() { tlsStart = time.Now() },
		TLSHandshakeDone:  func(_ tls.ConnectionState, _ error) { tlsDuration = time.Since(tlsStart) },
	}

	req, err := http.NewRequest("HEAD", c.apiURL, nil)
	if err != nil {
		return 0
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))
	resp, err := c.client.Do(req)
	if err != nil {
		return 0
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return tlsDuration
}
