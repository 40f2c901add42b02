package models

// ChatUser holds the slice of the users collection the chat layer needs:
// the platform's numeric user id and the display name stamped onto messages
type ChatUser struct {
	ID       int    `json:"id" bson:"userID"`
	Username string `json:"username" bson:"username"`
}
