package echoui

// Remediation is written by Launcher.Run when no launch configuration worked.
const Remediation = `All launch methods failed.

Additional steps:
1. Make sure nothing else is listening on the configured ports:
   lsof -i :7872 -i :7860-7959
2. Check that the loopback interface is available (127.0.0.1)
3. Try again from a clean environment (fresh shell, no proxy variables)
4. If running in Docker, check the container's network configuration
`
