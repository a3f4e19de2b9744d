package collection

import "context"

// Confirmer は破壊的操作の実行確認を行う。
// falseを返した場合、操作は何も変更せずに model.ErrConfirmationRequired で終了する。
type Confirmer interface {
	Confirm(ctx context.Context, action string) bool
}

// ConfirmFunc は関数をConfirmerとして扱うアダプタ。
type ConfirmFunc func(ctx context.Context, action string) bool

// Confirm はf(ctx, action)を呼び出す。
func (f ConfirmFunc) Confirm(ctx context.Context, action string) bool {
	return f(ctx, action)
}

// Confirmed は固定の確認結果を返すConfirmerを生成する。
// HTTPハンドラではクエリパラメータ confirm=true の有無を渡す。
func Confirmed(ok bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return ok })
}
