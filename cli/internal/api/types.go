package api

// Response is the { ok, error } envelope every endpoint returns.
type Response struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

type Settings struct {
	EnableSync bool `json:"enableSync"`
}

// Account mirrors the account returned by GET /account.
type Account struct {
	ID        string   `json:"_id"`
	Username  string   `json:"username"`
	Avatar    string   `json:"avatar"`
	Used      int64    `json:"used"`
	Storage   int64    `json:"storage"`
	Settings  Settings `json:"settings"`
	ShareCode string   `json:"shareCode,omitempty"`
}

type AccountResponse struct {
	Response
	User Account `json:"user"`
}

type SettingsResponse struct {
	Response
	Settings Settings `json:"settings"`
}

// Profile is what the server reveals about another account.
type Profile struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type ProfileResponse struct {
	Response
	User Profile `json:"user"`
}

type FilesResponse struct {
	Response
	Files []string `json:"files"`
}

type ExistsResponse struct {
	Response
	Exists bool `json:"exists"`
}

// UploadResponse carries Warning instead of Size when the photo was already stored.
type UploadResponse struct {
	Response
	Size int64 `json:"size"`
}

// Share is a photo another account has shared with the caller.
type Share struct {
	UserID string `json:"userId"`
	Photo  string `json:"photo"`
}

type SharesResponse struct {
	Response
	Shares []Share `json:"shares"`
}

type BlocksResponse struct {
	Response
	Blocked []string `json:"blocked"`
}

type DeleteAllResponse struct {
	Response
	Deleted int `json:"deleted"`
}
