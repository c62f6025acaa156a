package model

// リクエストの主体。ログイン済みなら UserID、未ログインなら SessionKey
type Actor struct {
	UserID     int64
	Role       Role
	SessionKey string
}

func UserActor(userID int64, role Role) Actor {
	return Actor{UserID: userID, Role: role}
}

func AnonymousActor(sessionKey string) Actor {
	return Actor{SessionKey: sessionKey}
}

// 決済確定など外部からのトリガー用
func SystemActor() Actor {
	return Actor{Role: RoleAdmin}
}

func (a Actor) Authenticated() bool {
	return a.UserID > 0
}
