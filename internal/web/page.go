package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard is the page shell. All live content arrives as fragments over
// the websocket and replaces the placeholder sections below.
func Dashboard(viewer Viewer, signedIn bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Debate Dashboard</title>
    <link rel="stylesheet" href="/static/styles.css"/>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">Debate Dashboard</span>
`)
		if signedIn {
			_, _ = io.WriteString(w, `        <h1>Welcome, `+esc(viewer.Name)+`</h1>
`)
		} else {
			_, _ = io.WriteString(w, `        <h1>Sign in to follow the round</h1>
        <form id="claimForm" class="join-form">
          <input name="user_id" placeholder="User ID" autocomplete="off" required/>
          <input name="name" placeholder="Display name" autocomplete="name" required/>
          <label><input type="checkbox" name="prefer_judging"/> Prefer judging</label>
          <button type="submit" class="secondary">Sign in</button>
        </form>
        <div id="claimResult" class="result"></div>
`)
		}
		_, _ = io.WriteString(w, `      </header>

      <section class="panel" id="currentDebate"></section>
      <section class="panel" id="voteProgress"></section>
      <section class="panel" id="voteBox"></section>
      <section class="panel" id="roomDiagram"></section>
      <section class="panel" id="debateLists"></section>
    </main>

    <script>
      const claimForm = document.getElementById("claimForm");
      if (claimForm) {
        claimForm.addEventListener("submit", async (event) => {
          event.preventDefault();
          const res = await fetch("/api/session", {
            method: "POST",
            headers: { "Content-Type": "application/json" },
            body: JSON.stringify({
              user_id: parseInt(claimForm.elements.user_id.value, 10),
              name: claimForm.elements.name.value.trim(),
              prefer_judging: claimForm.elements.prefer_judging.checked
            })
          });
          if (res.ok) {
            window.location.reload();
            return;
          }
          const data = await res.json();
          document.getElementById("claimResult").textContent = data.error || "Sign-in failed.";
        });
      }

      const proto = window.location.protocol === "https:" ? "wss:" : "ws:";
      const socket = new WebSocket(proto + "//" + window.location.host + "/ws/dashboard");
      socket.addEventListener("message", (event) => {
        const msg = JSON.parse(event.data);
        const target = document.getElementById(msg.fragment);
        if (!target) return;
        target.innerHTML = msg.html;
      });

      document.addEventListener("click", async (event) => {
        const button = event.target.closest("[data-role='vote-button']");
        if (!button) return;
        event.preventDefault();
        await fetch("/api/debate/" + button.dataset.debateId + "/vote", {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({ topic_id: parseInt(button.dataset.topicId, 10) })
        });
      });
    </script>
  </body>
</html>
`)
		return nil
	})
}
