package pipeline

// InstagramSessionCookie renders a Netscape-format cookie blob carrying
// an Instagram sessionid, suitable for Request.CookieData.
func InstagramSessionCookie(sessionID string) string {
	return "# Netscape HTTP Cookie File\n" +
		".instagram.com\tTRUE\t/\tTRUE\t2147483647\tsessionid\t" + sessionID + "\n"
}
