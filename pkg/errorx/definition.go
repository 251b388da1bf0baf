package errorx

var (
	ErrAuthRequired         = New(AuthRequired, "auth_required", "authentication required")
	ErrUserNotFound         = New(NotFound, "user_not_found", "user not found")
	ErrPostNotFound         = New(NotFound, "post_not_found", "post not found")
	ErrLikeNotFound         = New(NotFound, "like_not_found", "like not found")
	ErrNotificationNotFound = New(NotFound, "notification_not_found", "notification not found")
	ErrAlreadyLiked         = New(Conflict, "already_liked", "post already liked")
	ErrAlreadyMarkedBad     = New(Conflict, "already_marked_bad", "post already marked bad")
	ErrInvalidSelfFollow    = New(InvalidInput, "invalid_self_follow", "cannot follow yourself")
	ErrInvalidQuery         = New(InvalidInput, "invalid_query", "invalid feed query")
	ErrInvalidUpload        = New(InvalidInput, "invalid_upload", "avatar must be an image")
	ErrNotPostOwner         = New(Forbidden, "not_post_owner", "you are not the owner of this post")
)
