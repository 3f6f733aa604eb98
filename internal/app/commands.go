package app

// Command is a recognized chat keyword.
type Command int

const (
	CommandListCommands Command = iota + 1
	CommandHowToPlay
	CommandListQuizzes
	CommandCreateQuiz
	CommandRequestQuiz
	CommandRanking
	CommandSetImage
	CommandPlayAudio
	CommandNextContest
)

// commandKeywords maps exact chat texts to commands.
var commandKeywords = map[string]Command{
	"コマンド":    CommandListCommands,
	"あそびかた":   CommandHowToPlay,
	"クイズ一覧":   CommandListQuizzes,
	"クイズ作成":   CommandCreateQuiz,
	"クイズ教えて":  CommandRequestQuiz,
	"ランキング":   CommandRanking,
	"画像設定":    CommandSetImage,
	"音声再生":    CommandPlayAudio,
	"開催コンテスト": CommandNextContest,
}

// LookupCommand resolves an exact keyword.
func LookupCommand(text string) (Command, bool) {
	cmd, ok := commandKeywords[text]
	return cmd, ok
}

// Links are the public pages referenced by informational replies.
type Links struct {
	HowToPlay string
	QuizList  string
	Ranking   string
}

const quizFormat = "問題：〇〇\n答え：〇〇\n終了日時：20xx/01/01 00:00"

// Reply texts.
const (
	msgNoQuiz            = "現在利用可能なクイズがありません。"
	msgCorrect           = "正解です！"
	msgAlreadyAnswered   = "回答済みです！"
	msgIncorrect         = "不正解です！"
	msgSendImage         = "画像を送信してください"
	msgImageSaved        = "画像を保存しました。"
	msgNoReferenceImages = "比較対象の画像がありません。"
	msgImageMatched      = "画像が一致しました！ 一致率: %.2f%%"
	msgImageNotMatched   = "画像が一致しませんでした。 一致率: %.2f%%"
	msgImageUnreadable   = "画像を読み込めませんでした。別の画像でお試しください。"
	msgAttachmentFailed  = "画像の取得に失敗しました。もう一度お試しください。"
	msgGenericFailure    = "エラーが発生しました。しばらくしてからもう一度お試しください。"
	msgNextContest       = "次回コンテスト\nクイズ問題：%s\n終了日時：%s"
	msgNoNextContest     = "次回コンテストはまだ設定されていません。"
	msgNoAudio           = "再生できる音声がありません。"
	msgQuizRegistered    = "クイズを登録しました！\n問題：「%s」\n答え：「%s」\n終了日時：「%s」"
	msgQuizStoreFailed   = "クイズの登録中にエラーが発生しました。もう一度お試しください。"
	msgMalformedQuiz     = "問題文の形式が正しくありません。\n【形式例】\n" + quizFormat
	msgInvalidDeadline   = "終了日時の形式が正しくありません。\n【形式例】\n終了日時：20xx/01/01 00:00"
	msgEmptyField        = "問題文・答え・終了日時のいずれかが空欄です。"
)

// commandTemplates builds the fixed replies of informational commands.
func commandTemplates(links Links) map[Command]string {
	return map[Command]string{
		CommandListCommands: "コマンド一覧です\nクイズ一覧\nクイズ作成\nクイズ教えて\n画像設定\n開催コンテスト",
		CommandHowToPlay:    "遊び方のリンクです\n" + links.HowToPlay,
		CommandListQuizzes:  "開催されるクイズの一覧です\n" + links.QuizList,
		CommandCreateQuiz:   "クイズ作成を行います\nクイズの問題を入力してください\n【問題の書き方】\n" + quizFormat,
		CommandRanking:      "ランキングページのリンクです\n" + links.Ranking,
	}
}

func rankingLinkText(links Links) string {
	return "ランキングページへのリンクです\n" + links.Ranking
}
