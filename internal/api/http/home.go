package http

import "net/http"

const homePage = `<!DOCTYPE html>
<html>
<head><title>Media Downloader</title></head>
<body>
  <h1>Media Downloader</h1>
  <form id="dl">
    <input type="text" name="url" placeholder="Media URL" size="50" required/>
    <select name="format">
      <option value="mp4">MP4</option>
      <option value="mp3">MP3</option>
      <option value="avi">AVI</option>
      <option value="wav">WAV</option>
      <option value="m4a">M4A</option>
    </select>
    <button type="submit">Download</button>
  </form>
  <pre id="progress"></pre>
  <script>
    document.getElementById("dl").addEventListener("submit", async (e) => {
      e.preventDefault();
      const form = new FormData(e.target);
      const resp = await fetch("/downloads", {
        method: "POST",
        headers: {"Content-Type": "application/json"},
        body: JSON.stringify({url: form.get("url"), format: form.get("format")}),
      });
      const body = await resp.json();
      if (!resp.ok) {
        document.getElementById("progress").textContent = body.error;
        return;
      }
      const events = new EventSource("/downloads/" + body.task_id + "/events");
      events.onmessage = (ev) => {
        const snap = JSON.parse(ev.data);
        document.getElementById("progress").textContent =
          snap.status + " " + snap.percent.toFixed(1) + "%";
        if (snap.status === "finished") {
          events.close();
          window.location = "/downloads/" + body.task_id + "/file";
        } else if (snap.status === "failed") {
          events.close();
          document.getElementById("progress").textContent = "failed: " + (snap.error || "unknown error");
        }
      };
    });
  </script>
</body>
</html>`

// Home serves the minimal submission form.
func (h *TaskHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(homePage))
}
