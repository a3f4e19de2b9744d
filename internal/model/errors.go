// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials       = "INVALID_CREDENTIALS"
	ErrCodeEmailAlreadyExists       = "EMAIL_ALREADY_EXISTS"
	ErrCodeMalformedCollectionInput = "MALFORMED_COLLECTION_INPUT"
	ErrCodeNotFound                 = "NOT_FOUND"
	ErrCodeConfirmationRequired     = "CONFIRMATION_REQUIRED"
	ErrCodeInvalidRequest           = "INVALID_REQUEST"
	ErrCodeValidation               = "VALIDATION_FAILED"
	ErrCodeInvalidFilter            = "INVALID_FILTER"
	ErrCodeInvalidEmbedURL          = "INVALID_EMBED_URL"
	ErrCodeUnauthorized             = "UNAUTHORIZED"
	ErrCodeRateLimited              = "RATE_LIMIT_EXCEEDED"
)

// 認証・コレクション操作が返す番兵エラー。errors.Isで判定できる。
var (
	// ErrInvalidCredentials はメールアドレスまたはパスワードが一致しない場合のエラー。
	ErrInvalidCredentials = &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}

	// ErrEmailAlreadyExists は登録済みのメールアドレスで新規登録しようとした場合のエラー。
	ErrEmailAlreadyExists = &APIError{
		Code:     ErrCodeEmailAlreadyExists,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "ログインするか、別のメールアドレスで登録してください。",
	}

	// ErrConfirmationRequired は破壊的操作に明示的な確認がない場合のエラー。
	ErrConfirmationRequired = &APIError{
		Code:     ErrCodeConfirmationRequired,
		Message:  "この操作には確認が必要です。",
		Category: "catalog",
		Action:   "削除してよいか確認のうえ、confirm=true を付けて再度実行してください。",
	}

	// ErrRateLimited はログイン・登録の試行回数が上限を超えた場合のエラー。
	ErrRateLimited = &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "auth",
		Action:   "Retry-Afterの秒数だけ待ってから再度お試しください。",
	}
)

// NewMalformedCollectionInputError はコレクション置換の入力が配列でない場合のエラーを生成する。
// 呼び出し元には返さず、ログ出力にのみ使用する。
func NewMalformedCollectionInputError(collection string) *APIError {
	return &APIError{
		Code:     ErrCodeMalformedCollectionInput,
		Message:  fmt.Sprintf("コレクションの置換データが不正です: %s", collection),
		Category: "catalog",
		Action:   "配列形式のデータを渡してください。",
	}
}

// NewNotFoundError は指定IDのレコードが見つからない場合のエラーを生成する。
func NewNotFoundError(kind string, id int) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("指定された%sが見つかりません: %d", kind, id),
		Category: "catalog",
		Action:   "IDを確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析に失敗した場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewValidationError は入力値の検証に失敗した場合のエラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "必須項目をすべて入力してください。",
	}
}

// NewInvalidFilterError は無効なフィルタエラーを生成する。
func NewInvalidFilterError(filter string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("無効なフィルタです: %s", filter),
		Category: "validation",
		Action:   "一覧画面で指定できるフィルタを使用してください。",
	}
}

// NewInvalidEmbedURLError は動画の埋め込みURLが許可されたプレフィックスで始まらない場合のエラーを生成する。
func NewInvalidEmbedURLError(url string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmbedURL,
		Message:  fmt.Sprintf("埋め込みURLの形式が正しくありません: %s", url),
		Category: "validation",
		Action:   "https://www.youtube.com/embed/ または https://player.vimeo.com/video/ で始まるURLを入力してください。",
	}
}

// NewUnauthorizedError は認証が必要な場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}
