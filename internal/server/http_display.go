package server

import "fmt"

// displayServerInfo prints a startup summary of the scoring API:
// routes, auth state, and the request limits in effect.
func (s *Server) displayServerInfo() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health    - Health check")
	fmt.Println("  GET  /stats     - Server statistics")
	fmt.Println("  POST /analyze   - Score a resume (requires API key)")
	fmt.Println("  GET  /roles     - List target roles (requires API key)")

	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to /analyze and /roles")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}

	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n",
			s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}

	if s.RateLimit == nil || !s.RateLimit.Enabled {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
		return
	}
	fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	if s.RateLimit.ByAPIKey {
		fmt.Println("  - Per API key rate limiting enabled")
	}
	if s.RateLimit.ByIP {
		fmt.Println("  - Per IP address rate limiting enabled")
	}
}
