package chat

import "context"

func (e *Engine) enterCustomQuestion(sess *Session) Reply {
	if e.qa == nil {
		return menuReply("I can only help with bookings, ticket checks, and cancellations right now. What would you like to do?")
	}
	sess.AwaitingCustomQuestion = true
	return Reply{Message: "Sure! What would you like to know?", Options: nil}
}

func (e *Engine) handleCustomQuestion(ctx context.Context, sess *Session, message string) Reply {
	// One question per excursion: the conversation always lands back at
	// the menu, whether the answer worked or not.
	sess.AwaitingCustomQuestion = false
	sess.Step = StepMainMenu

	if e.qa == nil {
		return menuReply("I can't answer general questions right now, sorry. What else can I do for you?")
	}
	answer, err := e.qa.Ask(ctx, message)
	if err != nil {
		e.metrics.ObserveQAFallback("error")
		e.logger.Error("qa fallback failed", "error", err)
		return menuReply("Sorry, I couldn't find an answer to that right now. Is there anything else I can help with?")
	}
	e.metrics.ObserveQAFallback("ok")
	return menuReply(answer)
}
