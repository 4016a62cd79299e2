package runtime

var hostSyscalls = LinuxSyscalls
