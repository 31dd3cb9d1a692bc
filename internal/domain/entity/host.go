package entity

// HostUser is the profile the host frame exposes for the viewer.
type HostUser struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	PfpURL      string `json:"pfpUrl,omitempty"`
}

// NotificationDetails are returned by the host when the app is added.
type NotificationDetails struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// AuthState tracks the quick-auth sign-in of a session.
type AuthState struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Token           string `json:"token,omitempty"`
	FID             int64  `json:"fid,omitempty"`
}
