package types

type (
	// DeleteResult contains the result of a delete operation.
	DeleteResult struct {
		Success  bool   `json:"success"`
		Filename string `json:"filename"`
		Existed  bool   `json:"existed"`
		Message  string `json:"message"`
	}
)
