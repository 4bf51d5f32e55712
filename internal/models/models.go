package models

import (
	"time"
)

// Coordinates represents a point in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GPSData represents GPS information extracted from image EXIF tags
type GPSData struct {
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	LatitudeRef  string   `json:"latitude_ref"`
	LongitudeRef string   `json:"longitude_ref"`
	Altitude     *float64 `json:"altitude,omitempty"`
}

// ImageMetadata represents metadata extracted from an uploaded image
type ImageMetadata struct {
	Filename     string            `json:"filename"`
	FileSize     int64             `json:"file_size"`
	FileModified time.Time         `json:"file_modified"`
	Width        int               `json:"width,omitempty"`
	Height       int               `json:"height,omitempty"`
	ExifData     map[string]string `json:"exif_data,omitempty"`
	GPS          *GPSData          `json:"gps_coordinates,omitempty"`
}

// VisionAnalysis represents the geolocation analysis produced by the vision LLM
type VisionAnalysis struct {
	Description           string       `json:"description"`
	Confidence            string       `json:"confidence"`
	Country               string       `json:"country"`
	City                  string       `json:"city"`
	Neighborhood          string       `json:"neighborhood"`
	Street                string       `json:"street"`
	Coordinates           *Coordinates `json:"coordinates,omitempty"`
	ArchitecturalFeatures []string     `json:"architectural_features"`
	LandscapeFeatures     []string     `json:"landscape_features"`
}

// Address represents a structured postal address from reverse geocoding
type Address struct {
	Country      string `json:"country"`
	CountryCode  string `json:"country_code,omitempty"`
	State        string `json:"state,omitempty"`
	County       string `json:"county,omitempty"`
	City         string `json:"city,omitempty"`
	District     string `json:"district,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Street       string `json:"street,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// GeoLocation represents a reverse-geocoded location
type GeoLocation struct {
	Coordinates Coordinates `json:"coordinates"`
	Address     Address     `json:"address"`
	DisplayName string      `json:"display_name,omitempty"`
}

// CoordinateDelta quantifies the disagreement between two coordinate sources
type CoordinateDelta struct {
	LatitudeDiff   float64 `json:"latitude_diff"`
	LongitudeDiff  float64 `json:"longitude_diff"`
	DistanceMeters float64 `json:"difference_meters"`
}

// MergedLocation is the reconciliation of LLM-derived and EXIF GPS locations
type MergedLocation struct {
	Coordinates       *Coordinates     `json:"coordinates,omitempty"`
	CoordinatesSource string           `json:"coordinates_source,omitempty"`
	Address           *Address         `json:"address,omitempty"`
	AddressSource     string           `json:"address_source,omitempty"`
	Delta             *CoordinateDelta `json:"coordinate_difference,omitempty"`
}

// AnalysisResult represents the complete analysis of an uploaded image or frame
type AnalysisResult struct {
	ImageID     string          `json:"image_id"`
	Fingerprint string          `json:"fingerprint"`
	Metadata    *ImageMetadata  `json:"metadata,omitempty"`
	Vision      *VisionAnalysis `json:"llm_analysis,omitempty"`
	Location    *MergedLocation `json:"geo_data,omitempty"`
	Cached      bool            `json:"cached"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ChatResponse represents a free-form vision LLM answer about an image
type ChatResponse struct {
	ImageID   string    `json:"image_id"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Detection represents a single detected object
type Detection struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
}

// DetectionSummary provides aggregate statistics over a detection run
type DetectionSummary struct {
	TotalObjects     int            `json:"total_objects_detected"`
	ObjectCounts     map[string]int `json:"object_counts"`
	HasPeople        bool           `json:"has_people"`
	MostCommonObject string         `json:"most_common_object,omitempty"`
}

// DetectionResult represents the outcome of an object detection request
type DetectionResult struct {
	ImageID             string           `json:"image_id"`
	Model               string           `json:"model_used"`
	ConfidenceThreshold float64          `json:"confidence_threshold"`
	Detections          []Detection      `json:"detections"`
	Summary             DetectionSummary `json:"summary"`
	AnnotatedImagePath  string           `json:"annotated_image_path,omitempty"`
	Timestamp           time.Time        `json:"timestamp"`
}

// FrameResult represents the analysis outcome for a single extracted frame
type FrameResult struct {
	FramePath string          `json:"frame_path"`
	Index     int             `json:"index"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	Result    *AnalysisResult `json:"result,omitempty"`
}

// VideoSummary provides summary statistics for a video analysis
type VideoSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// VideoAnalysis represents the aggregated analysis of an uploaded video
type VideoAnalysis struct {
	VideoID   string        `json:"video_id"`
	Frames    []FrameResult `json:"frames"`
	Summary   VideoSummary  `json:"summary"`
	Timestamp time.Time     `json:"timestamp"`
}

// GeocodeResult represents a single forward-geocoding candidate
type GeocodeResult struct {
	Name      string   `json:"name"`
	PlaceName string   `json:"place_name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	PlaceType []string `json:"place_type,omitempty"`
	Relevance float64  `json:"relevance"`
}

// SessionStatus represents the lifecycle state of an upload session
type SessionStatus string

const (
	SessionUploaded  SessionStatus = "uploaded"
	SessionAnalyzing SessionStatus = "analyzing"
	SessionCompleted SessionStatus = "completed"
	SessionError     SessionStatus = "error"
)

// MediaKind distinguishes image and video upload sessions
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Session represents an upload session tracked by the backend
type Session struct {
	ID         string        `json:"id"`
	Kind       MediaKind     `json:"kind"`
	Filename   string        `json:"filename"`
	FilePath   string        `json:"file_path"`
	UploadTime time.Time     `json:"upload_time"`
	Status     SessionStatus `json:"status"`
	Error      string        `json:"error,omitempty"`
}

// CacheStats reports cache occupancy and effectiveness
type CacheStats struct {
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

// LogSeverity represents the severity level of a log entry
type LogSeverity string

const (
	LogSeverityLow    LogSeverity = "low"
	LogSeverityMedium LogSeverity = "medium"
	LogSeverityHigh   LogSeverity = "high"
)

// ProcessType represents the type of process that created the log
type ProcessType string

const (
	ProcessTypeRequest  ProcessType = "request"
	ProcessTypeInternal ProcessType = "internal"
)

// LogEvent represents a process-specific logging context
type LogEvent struct {
	ProcessID   string      `json:"process_id"`
	ProcessType ProcessType `json:"process_type"`
	StartTime   time.Time   `json:"start_time"`
	ClientIP    string      `json:"client_ip,omitempty"`
}

// LogEntry represents a structured log entry for database storage
type LogEntry struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Severity    LogSeverity            `json:"severity,omitempty"`
	Message     string                 `json:"message"`
	Operation   string                 `json:"operation"`
	TargetName  string                 `json:"target_name,omitempty"`
	ProcessID   string                 `json:"process_id"`
	ProcessType ProcessType            `json:"process_type"`
	ClientIP    string                 `json:"client_ip,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
