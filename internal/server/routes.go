package server

// Routes registers every endpoint described by the system's HTTP surface:
// upload, preview, impose, re-download, and preset management. No route
// carries layout logic of its own — each is a thin adapter onto
// pkg/imposition or pkg/presets.
func (s *Server) Routes() error {
	api := s.server.Group("/api")

	api.POST("/upload", s.handleUpload)
	api.POST("/preview", s.handlePreview)
	api.POST("/impose", s.handleImpose)
	api.GET("/pdf/:session_id", s.handleGetPDF)

	api.GET("/presets/list", s.handleListPresets)
	api.GET("/presets/:id", s.handleGetPreset)
	api.POST("/presets/save", s.handleSavePreset)

	return nil
}
