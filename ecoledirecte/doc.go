// Package ecoledirecte is a client for the EcoleDirecte school portal's
// private HTTP API. It runs the full authentication handshake
// (anti-automation token, credential submission, the optional
// question/multiple-choice MFA challenge, device-token re-login) and exposes
// typed accessors for a learner's grades, homework, schedule, and messages.
//
// A client owns one logical session. Authentication calls must be
// serialized; data accessors may run concurrently once authenticated.
//
//	client := ecoledirecte.NewClient()
//	out, err := client.Login(ctx, username, password)
//	if err != nil { ... }
//	if out.Challenge != nil {
//		// show out.Challenge.Question / Choices to the user
//		out, err = client.SubmitAnswer(ctx, answer)
//	}
//	for _, student := range out.Session.Students() {
//		grades, err := student.Grades(ctx, nil)
//		...
//	}
package ecoledirecte
