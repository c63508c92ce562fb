package tcp_track

import (
	"fmt"
	"net"
)

// OutputSender streams per-tick telemetry over UDP as CSV.
type OutputSender struct {
	conn *net.UDPConn
}

// NewOutputSender creates a UDP sender for the given address.
func NewOutputSender(addr string) (*OutputSender, error) {
	if addr == "" {
		return &OutputSender{}, nil
	}
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, err
	}
	return &OutputSender{conn: conn}, nil
}

// Close releases the UDP socket.
func (s *OutputSender) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Send writes "frame,x,z,slope,track_error,reset" as a CSV payload.
func (s *OutputSender) Send(res StepResult) {
	if s == nil || s.conn == nil {
		return
	}
	_, _ = s.conn.Write([]byte(FormatTelemetry(res)))
}

// FormatTelemetry renders the CSV payload for one tick result.
func FormatTelemetry(res StepResult) string {
	return fmt.Sprintf("%d,%.4f,%.4f,%.5f,%.4f,%t",
		res.Frame, res.Pose.X, res.Pose.Z, res.Slope, res.TrackError, res.Reset)
}
