package domain

// SubscriberPreferences tracks delivery state for one subscriber
type SubscriberPreferences struct {
	WelcomeSeriesCompleted bool     `json:"welcomeSeriesCompleted"`
	Unsubscribed           bool     `json:"unsubscribed"`
	Tags                   []string `json:"tags"`
}

// Subscriber is one newsletter subscriber record in the store
type Subscriber struct {
	Email        string                `json:"email"`
	SubscribedAt string                `json:"subscribedAt"`
	Preferences  SubscriberPreferences `json:"preferences"`
	EmailsSent   map[string]string     `json:"emailsSent"`
}
