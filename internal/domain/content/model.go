// Package content holds the entities owned by the upstream content API.
// Field names follow the API's JSON contract.
package content

// User is a forum account.
type User struct {
	ID          string `json:"id"`
	Account     string `json:"account"`
	OAuthSource string `json:"oauth_source"`
	Nickname    string `json:"nickname"`
	Avatar      string `json:"avatar"`
	Role        int16  `json:"role"`
	Status      int16  `json:"status"`
	PubSettings string `json:"pub_settings"`
	Ext         string `json:"ext"`
	CreatedTime int64  `json:"created_time"`
}

// Subspace groups posts under a topic.
type Subspace struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Banner      string `json:"banner"`
	OwnerID     string `json:"owner_id"`
	Profession  string `json:"profession"`
	AppID       string `json:"appid"`
	IsPublic    bool   `json:"is_public"`
	Status      int16  `json:"status"`
	Weight      int16  `json:"weight"`
	CreatedTime int64  `json:"created_time"`
}

// Post is an article within a subspace.
type Post struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	AuthorID       string `json:"author_id"`
	AuthorNickname string `json:"author_nickname"`
	SubspaceID     string `json:"subspace_id"`
	ExtLink        string `json:"extlink"`
	Profession     string `json:"profession"`
	AppID          string `json:"appid"`
	IsPublic       bool   `json:"is_public"`
	Status         int16  `json:"status"`
	Weight         int16  `json:"weight"`
	CreatedTime    int64  `json:"created_time"`
}

// Comment is a reply attached to a post.
type Comment struct {
	ID             string `json:"id"`
	Content        string `json:"content"`
	AuthorID       string `json:"author_id"`
	AuthorNickname string `json:"author_nickname"`
	PostID         string `json:"post_id"`
	Status         int16  `json:"status"`
	Weight         int16  `json:"weight"`
	CreatedTime    int64  `json:"created_time"`
}
