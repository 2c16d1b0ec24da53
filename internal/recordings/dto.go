// AngelaMos | 2026
// dto.go

package recordings

type RecordingResponse struct {
	SID         string `json:"sid"`
	CallSID     string `json:"call_sid"`
	Duration    string `json:"duration"`
	DateCreated string `json:"date_created"`
	AudioURL    string `json:"audio_url"`
}

type RecordingListResponse struct {
	Recordings []RecordingResponse `json:"recordings"`
}

func ToRecordingResponse(rec Recording) RecordingResponse {
	return RecordingResponse{
		SID:         rec.SID,
		CallSID:     rec.CallSID,
		Duration:    rec.Duration,
		DateCreated: rec.DateCreated,
		AudioURL:    "/v1/recordings/" + rec.SID + "/audio",
	}
}

func ToRecordingResponseList(recs []Recording) RecordingListResponse {
	out := RecordingListResponse{
		Recordings: make([]RecordingResponse, 0, len(recs)),
	}
	for _, rec := range recs {
		out.Recordings = append(out.Recordings, ToRecordingResponse(rec))
	}

	return out
}
