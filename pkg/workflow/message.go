package workflow

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/tagrelease/pkg/domain/model"
	"github.com/m-mizutani/tagrelease/pkg/domain/types"
)

func versionBumpPrompt(s *model.ReleaseState) *model.Prompt {
	return &model.Prompt{
		Text: fmt.Sprintf("Bump *%s/%s* to version `%s` for release *%s*?",
			s.Repo.User, s.Repo.Name, s.Answers.Version, s.Answers.Name),
		Namespace: types.ActionNamespaceTagRelease,
		Choices: []model.Choice{
			{
				Label:    "Bump version",
				ActionID: types.ActionConfirmVersionBump,
				Payload:  model.ActionPayload{ID: s.ID, Key: types.AnswerKeyVersionBump, Value: types.AnswerYes},
				Style:    model.ChoiceStylePrimary,
			},
			{
				Label:    "Keep current version",
				ActionID: types.ActionConfirmVersionBump,
				Payload:  model.ActionPayload{ID: s.ID, Key: types.AnswerKeyVersionBump, Value: types.AnswerNo},
			},
			cancelChoice(s),
		},
	}
}

func releasePrompt(s *model.ReleaseState) *model.Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Ready to release *%s* of *%s/%s*\n", s.Answers.Name, s.Repo.User, s.Repo.Name)
	if s.Answers.VersionBump {
		fmt.Fprintf(&b, "Version: `%s`\n", s.Answers.Version)
	} else {
		b.WriteString("Version: unchanged\n")
	}
	fmt.Fprintf(&b, "Platforms: %s\n", strings.Join(s.Answers.Platforms, ", "))
	b.WriteString("Notes:")
	for _, note := range s.Answers.Notes {
		fmt.Fprintf(&b, "\n• %s", note)
	}

	return &model.Prompt{
		Text:      b.String(),
		Namespace: types.ActionNamespaceTagRelease,
		Choices: []model.Choice{
			{
				Label:    "Release",
				ActionID: types.ActionConfirmRelease,
				Payload:  model.ActionPayload{ID: s.ID, Key: types.AnswerKeyRelease, Value: types.AnswerYes},
				Style:    model.ChoiceStylePrimary,
			},
			cancelChoice(s),
		},
	}
}

func cancelChoice(s *model.ReleaseState) model.Choice {
	return model.Choice{
		Label:    "Cancel",
		ActionID: types.ActionCancel,
		Payload:  model.ActionPayload{ID: s.ID},
		Style:    model.ChoiceStyleDanger,
	}
}

func releasedMessage(s *model.ReleaseState) string {
	return fmt.Sprintf(":rocket: Release *%s* confirmed for %s.", s.Answers.Name, strings.Join(s.Answers.Platforms, ", "))
}

func cancelledMessage(s *model.ReleaseState) string {
	return fmt.Sprintf(":no_entry_sign: Release *%s* was cancelled.", s.Answers.Name)
}
