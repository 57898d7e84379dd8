package httpx

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"quoridor/internal/game"
	"quoridor/internal/room"
)

const langParam = "lang"

var (
	supportedTags = []language.Tag{language.English, language.BrazilianPortuguese}
	langMatcher   = language.NewMatcher(supportedTags)
)

// Message keys for failures that are not engine rejections.
const (
	msgRoomNotFound  = "room.not_found"
	msgRoomFull      = "room.full"
	msgUnknownPlayer = "room.unknown_player"
	msgConflict      = "room.conflict"
	msgInvalidCode   = "room.invalid_code"
)

var catalog = map[language.Tag]map[string]string{
	language.English: {
		string(game.ReasonOutOfBounds):    "That is outside the board.",
		string(game.ReasonOverlap):        "That wall overlaps another wall.",
		string(game.ReasonDisconnects):    "That wall would cut a player off from their goal.",
		string(game.ReasonNotYourTurn):    "It is not your turn.",
		string(game.ReasonNoWallsLeft):    "You have no walls left.",
		string(game.ReasonGameNotPlaying): "The game is not in progress.",
		string(game.ReasonIllegalMove):    "Your pawn cannot move there.",
		string(game.ReasonIllegalAction):  "That action is not valid.",
		msgRoomNotFound:                   "Room not found.",
		msgRoomFull:                       "The room is full.",
		msgUnknownPlayer:                  "You are not seated in this room.",
		msgConflict:                       "The room changed too often, try again.",
		msgInvalidCode:                    "Room codes have six letters or digits.",
	},
	language.BrazilianPortuguese: {
		string(game.ReasonOutOfBounds):    "Isso está fora do tabuleiro.",
		string(game.ReasonOverlap):        "Essa parede sobrepõe outra parede.",
		string(game.ReasonDisconnects):    "Essa parede isolaria um jogador do seu objetivo.",
		string(game.ReasonNotYourTurn):    "Não é a sua vez.",
		string(game.ReasonNoWallsLeft):    "Você não tem mais paredes.",
		string(game.ReasonGameNotPlaying): "A partida não está em andamento.",
		string(game.ReasonIllegalMove):    "Seu peão não pode ir para lá.",
		string(game.ReasonIllegalAction):  "Essa ação não é válida.",
		msgRoomNotFound:                   "Sala não encontrada.",
		msgRoomFull:                       "A sala está cheia.",
		msgUnknownPlayer:                  "Você não está nesta sala.",
		msgConflict:                       "A sala mudou muitas vezes, tente novamente.",
		msgInvalidCode:                    "Códigos de sala têm seis letras ou dígitos.",
	},
}

func init() {
	for tag, msgs := range catalog {
		for key, msg := range msgs {
			if err := message.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

// resolveTag picks the response language: ?lang first, then
// Accept-Language, then English.
func resolveTag(r *http.Request) language.Tag {
	if r == nil {
		return language.English
	}
	if v := strings.TrimSpace(r.URL.Query().Get(langParam)); v != "" {
		if tag, err := language.Parse(v); err == nil {
			return matchTag(tag)
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return matchTag(tags...)
		}
	}
	return language.English
}

func matchTag(tags ...language.Tag) language.Tag {
	_, idx, conf := langMatcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supportedTags[idx]
}

func localize(r *http.Request, key string) string {
	fallback := catalog[language.English][key]
	if fallback == "" {
		fallback = key
	}
	return message.NewPrinter(resolveTag(r)).Sprintf(message.Key(key, fallback))
}

// rejectionMessage renders an engine rejection for the caller's language.
func rejectionMessage(r *http.Request, err error) (game.Reason, string) {
	reason, ok := game.ReasonOf(err)
	if !ok {
		return game.ReasonIllegalAction, localize(r, string(game.ReasonIllegalAction))
	}
	return reason, localize(r, string(reason))
}

// roomErrorStatus maps room service failures to a status and message key.
func roomErrorStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, room.ErrNotFound):
		return http.StatusNotFound, msgRoomNotFound, true
	case errors.Is(err, room.ErrInvalidCode):
		return http.StatusBadRequest, msgInvalidCode, true
	case errors.Is(err, room.ErrRoomFull):
		return http.StatusConflict, msgRoomFull, true
	case errors.Is(err, room.ErrConflict):
		return http.StatusConflict, msgConflict, true
	case errors.Is(err, room.ErrUnknownPlayer):
		return http.StatusForbidden, msgUnknownPlayer, true
	default:
		return http.StatusInternalServerError, "", false
	}
}
