package bda

import "fmt"

// JobMetadata is the job_metadata.json document a finished Data Automation
// job writes next to its outputs. Only the fields we navigate are modeled.
type JobMetadata struct {
	OutputMetadata []AssetMetadata `json:"output_metadata"`
}

// AssetMetadata describes the outputs for one input asset.
type AssetMetadata struct {
	AssetID         int               `json:"asset_id"`
	SegmentMetadata []SegmentMetadata `json:"segment_metadata"`
}

// SegmentMetadata carries the S3 URIs of a segment's output documents.
type SegmentMetadata struct {
	StandardOutputPath string `json:"standard_output_path"`
	CustomOutputPath   string `json:"custom_output_path"`
}

// OutputPaths returns the custom (blueprint) and standard output URIs of
// the first segment of the first asset. Video jobs produce exactly one of
// each; anything else means the job metadata is malformed.
func (m JobMetadata) OutputPaths() (custom, standard string, err error) {
	if len(m.OutputMetadata) == 0 || len(m.OutputMetadata[0].SegmentMetadata) == 0 {
		return "", "", fmt.Errorf("job metadata has no segment outputs")
	}
	seg := m.OutputMetadata[0].SegmentMetadata[0]
	if seg.CustomOutputPath == "" {
		return "", "", fmt.Errorf("job metadata segment has no custom output path")
	}
	return seg.CustomOutputPath, seg.StandardOutputPath, nil
}
